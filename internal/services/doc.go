// Package services defines the [Registry] and [StatsProvider] interfaces used by the harvester
// and implements them over HTTP.
//
// # Registry
//
// [HubService] lists datasets from the Hugging Face Hub (`GET /api/datasets?filter=&full=true&limit=`).
// Results are paginated with RFC 8288 Link headers; the client follows rel="next" until exhausted.
//
// # Statistics Provider
//
// [DatasetsService] reads split sizes from datasets-server:
//   - `GET /info?dataset=&config=` for split example counts
//   - `GET /splits?dataset=` for config names
//
// Requests are throttled with a [rate.Limiter] and bounded by the HTTP client timeout.
//
// # Authentication
//
// Both clients send a bearer token when one is configured, through an [oauth2.StaticTokenSource].
//
// # Error Handling
//
// HTTP failures map onto sentinel errors from the shared package:
//   - [shared.ErrDatasetNotFound] : 404
//   - [shared.ErrServiceUnavailable] : 429, 502, 503, 504
//   - [shared.ErrAPIRequest] : any other non-2xx status or transport failure
//
// Context cancellation keeps the context error in the chain, so callers can tell an interruption from an API failure.
package services
