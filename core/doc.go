/* Copyright 2018-2019 Comcast Cable Communications Management, LLC
 * Licensed under the Apache License, Version 2.0 (the "License");
 * you may not use this file except in compliance with the License.
 * You may obtain a copy of the License at
 * http://www.apache.org/licenses/LICENSE-2.0
 * Unless required by applicable law or agreed to in writing, software
 * distributed under the License is distributed on an "AS IS" BASIS,
 * WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
 * See the License for the specific language governing permissions and
 * limitations under the License.
 */

// Package core provides the core gear for executing interaction
// protocols.
//
// A Protocol declares Roles and, for each Role, a Clause.  A Clause
// is a binary tree.  Its leaves are steps (Defs): sending a message,
// receiving one, switching to another role, or doing nothing.  Its
// interior nodes are Then (sequencing) and Or (choice).  Every step
// can be gated by Constraints.
//
// Evaluation is three-valued.  A step that can't fire yet (say, the
// message it wants hasn't arrived) is Maybe, which means "try again
// later".  False is a real failure, and an error is a fault that ends
// an agent's run.
//
// To run a clause, Instantiate it (which copies the shared template
// and binds its signature) and give it to Execution.Run along with an
// Env, which provides the mailbox and the other agents.  The crew
// package has an Env.
//
// Terms can be written compactly with ParseTerm.
package core
