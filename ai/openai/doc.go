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


// Package openai implements the ai package interfaces using OpenAI-compatible
// APIs via langchaingo.
//
// The implementation works with any OpenAI-compatible endpoint, including:
//
//   - Ollama (http://localhost:11434/v1)
//   - LocalAI
//   - vLLM
//   - OpenAI itself
//
// Posting validation uses JSON mode with temperature 0 and parses the model
// response into a structured assessment. Malformed responses are retried up
// to three times with light JSON repair in between; a response that still
// does not parse is surfaced as *ai.ParseError so the caller can quarantine
// the posting instead of failing the run.
package openai
