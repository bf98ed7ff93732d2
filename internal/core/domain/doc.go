// Package domain defines the core business entities for repodoc.
//
// This package is part of the hexagonal architecture's innermost layer.
// It has NO external dependencies and defines the fundamental types:
//
//   - OrganizationHandle: The organization a run documents
//   - RepositoryDescriptor: A repository discovered by a lister
//   - LocalRepository: A repository checked out in the workspace
//   - TriagedFileSet: The budget-bounded files sent to the model
//   - GeneratedDocumentSet: The documentation sections of one repository
//   - RunReport: Per-repository outcome of a run
//
// # Architectural Position
//
// Domain is at the centre of the hexagon. It may only import
// the Go standard library. All other packages depend on domain,
// never the reverse.
//
// # Import Rules
//
//   - Can Import: Standard library only
//   - Cannot Import: Any internal/ package, any external dependency
package domain
