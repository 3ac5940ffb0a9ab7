// Package extract recovers a JSON object from the free-text completion of a
// language model. Models are asked to answer with a bare JSON object, but in
// practice completions arrive wrapped in markdown code fences, surrounded by
// explanatory prose, or mixed with other brace-delimited text. Object walks a
// fixed chain of recovery strategies, from strict to permissive, and fails
// with a typed error when none of them yields a JSON object.
package extract
