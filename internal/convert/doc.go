// Package convert holds the pure conversion functions between the XML, JSON,
// OpenAI and neutral tool-use shapes. Every function is stateless apart from
// the process-wide id stamp used by SynthesizeID.
package convert
