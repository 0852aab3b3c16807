// Copyright 2025 Gophora
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package recommend ranks approved jobs for users and queries.
//
// The Engine type exposes four views over the routed collections:
//   - Immediate: trust-ranked zero/low-skill jobs, identical for every user
//   - ForUser: skill-based jobs ranked by profile embedding similarity,
//     filtered by skill overlap
//   - Search: free-text semantic search over all verified jobs
//   - Trending: rolling-window engagement ranking fed by recorded views
//     and applications
//
// The engine never writes to the job collections; it only reads what the
// ingestion pipeline routed.
package recommend
