// Package nlu defines the boundary to the external natural-language
// classification capability. The intent parser delegates here only after its
// deterministic layers failed, and it treats everything coming back as
// untrusted input: the Result schema is validated against the closed intent
// set before any field of it may influence dispatch.
//
// Provider adapters live in sub-packages (nlu/openai, nlu/anthropic); a
// MockClassifier supports tests and offline development.
package nlu
