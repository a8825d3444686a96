// Package generate turns retrieved repository context into structured
// improvement suggestions via a chat model.
//
// Two independent failure budgets apply. Transport-level failures
// (timeouts, rate limits, server errors) are retried by Policy with
// exponential backoff and jitter; permanent failures such as invalid
// credentials stop immediately. Responses that arrive but do not parse
// or validate against the suggestion schema consume a separate, smaller
// budget: each schema retry re-prompts the model with the concrete
// parse error so it can correct itself.
package generate
