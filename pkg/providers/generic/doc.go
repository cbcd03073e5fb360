// Package generic implements the adapter for local OpenAI-compatible
// servers.
//
// Known to work with:
//
//   - Ollama (http://localhost:11434/v1)
//   - LM Studio (http://localhost:1234/v1)
//   - vLLM (http://localhost:8000/v1)
//
// No API key is sent unless one is configured. Usage on the final stream
// chunk depends on the server; when it is missing the caller estimates
// token counts itself.
package generic
