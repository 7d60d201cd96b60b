// Package lcc runs coordination protocols in which agents play roles
// and talk by letters.
//
// A protocol is a set of roles and one clause per role.  A clause is
// a tree of steps (sends, receives, role switches, and null steps)
// joined by "then" and "or", and every step can be gated by
// constraints.  Agents subscribe to roles, the crew waits until the
// required roles are covered, and then each agent evaluates its
// clause against a shared mailbox until the clause is TRUE or FALSE.
//
// The model and the evaluator are in package 'core', the runtime is in
// 'crew', and protocol documents are parsed by 'protocol'.  Command
// lcc runs a protocol, and lccdoc renders one.
package lcc
