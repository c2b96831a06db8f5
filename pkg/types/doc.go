// Package types defines the catalog entities (fields, sections, variants),
// the persisted section configuration of a template instance, the Store and
// TemplateTable interfaces, and the standard errors shared by invitekit
// packages.
package types
