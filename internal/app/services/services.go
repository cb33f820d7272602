// Package services holds the business logic between the HTTP and CLI entry
// points and the repositories.
//
// Services defined in this package:
// - ExamService: populates exam tables from the registrar and queries them
package services
