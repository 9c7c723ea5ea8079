// Package models contains GORM persistence models that map to database tables.
// They are kept apart from domain entities so the domain stays free of ORM
// tags; every model has ToDomain and FromDomain mappers.
//
// Structure:
//   - base.go: BaseModel and AggregateModel
//   - housing.go: proyectos, viviendas
//   - client.go: clientes, renuncias
//   - ledger.go: abonos, counters
//   - audit.go: audits, notifications
package models
