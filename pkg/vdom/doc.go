/*
Package vdom is the virtual node model produced by the evaluator.

Nodes carry string ids that are stable across re-evaluations of the same
document at the same instantiation path; a reconciler outside this module keys
on them to diff successive trees. The package has no evaluation logic: it only
defines the tree, the evaluated CSS sheet, and their HTML and JSON encodings.
*/
package vdom
