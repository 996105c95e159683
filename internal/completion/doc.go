// Package completion is the client side of the text-completion service. A
// Completer takes one Request and returns the first candidate's text.
// Backends: an OpenAI-compatible completions endpoint, Gemini through the
// genai SDK, and a fake for offline runs and tests. Cross-cutting concerns
// such as request logging are layered on with Middleware.
package completion
