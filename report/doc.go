// Package report outputs the results of the solvers, either as DIMACS-like text or as YAML documents.
package report
