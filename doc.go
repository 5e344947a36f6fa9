// Package sitebook provides the data layer of a local-first construction
// project expense book. A single Document holds every project, its committed
// contract amount, the client payments received, the departmental expenses
// paid out and the files attached to them.
//
// The core functionalities include:
//   - Store: loading, saving and clearing the Document under a single key of a
//     local key-value storage, reconciling older or partial documents against
//     the canonical default shape.
//   - Backups: exporting the Document as raw or gzip-compressed JSON and
//     restoring it from either format.
//   - Accounting: stateless functions deriving totals, balances, payment
//     progress and per-department breakdowns from a project's ledgers.
//   - Mutations: copy-on-write operations producing a new Document version
//     for every change to projects, departments and ledgers.
//   - Attachments: validating and encoding uploaded files inline, so they
//     persist with the rest of the Document.
//
// This package serves as the foundational logic for the `sb` command-line
// tool.
package sitebook
