// Package app composes the fatesheet services into a running application.
//
// # Package Structure
//
//	internal/app/
//	├── application.go      # Application struct, wiring, and lifecycle
//	├── domain/character/   # Character records and sheet view-models
//	├── storage/            # Store interfaces and implementations
//	│   ├── interfaces.go   # TodoStore, CharacterStore
//	│   ├── memory/         # In-process store, seeded from YAML
//	│   ├── postgres/       # PostgreSQL store
//	│   └── redisstore/     # Redis list todo store
//	├── services/           # todos and sheets services
//	├── httpapi/            # Routes, handlers, templates
//	├── metrics/            # Prometheus collectors
//	├── system/             # Lifecycle manager
//	└── runtime/            # Config driven assembly and HTTP server
//
// # Dependency Direction
//
//	cmd/fatesheet/
//	      │
//	      ▼
//	internal/app/runtime ──► internal/app/httpapi
//	      │                        │
//	      ▼                        ▼
//	internal/app (composition) ──► internal/app/services ──► internal/app/storage
//
// Stores are interfaces chosen at startup. Nil stores default to the
// in-memory implementation, which keeps handlers testable without a
// database.
package app
