/* Copyright 2019 Comcast Cable Communications Management, LLC
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

// Package protocol reads protocol documents (YAML or JSON) and
// compiles them into a core.Protocol.
//
// A document looks like
//
//   name: pingpong
//   roles:
//     - name: pinger
//       kind: initial
//       min: 1
//       max: 1
//     - name: ponger
//       kind: necessary
//   clauses:
//     - signature: a(pinger, ?I)
//       body:
//         - send: ping(?X)
//           to: a(ponger, ?P)
//           if:
//             - assign: ["?X", 1]
//         - then
//         - recv: pong(?Y)
//           from: a(ponger, ?P)
//
// A clause body is a sequence of steps and operators ("then" or ">",
// "or" or "|", "(" and ")"), which are assembled with
// core.TreeBuilder.  Terms and agents are written as term literals
// (see core.ParseTerm).  An agent ID of "_" (or a missing one) means
// "any agent".
//
// A step is exactly one of
//
//   send: TERM, to: AGENT
//   recv: TERM, from: AGENT
//   switch: AGENT
//   noop: true
//
// and can have constraints ("if"), each exactly one of
//
//   assign: [LEFT, RIGHT]
//   lt|gt|eq|ne: [LEFT, RIGHT]
//   cons: {list: VAR, head: ARG, tail: ARG}
//   call: TERM
//
// A string argument is an argument literal (see
// core.ParseArgument), so a string constant needs its own quotes
// ('"hello"').  Other YAML values are constants.
package protocol
