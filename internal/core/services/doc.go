// Package services implements the documentation pipeline.
//
// The pipeline runs per repository: the TriageEngine selects files within a
// byte budget, the Generator turns them into documentation sections through a
// language model, and the Assembler writes the sections into the checkout's
// docs folder. DocumentationService lists and acquires repositories and drives
// the other services. SettingsLoader builds the immutable run configuration.
//
// Services depend only on the domain and on port interfaces.
package services
