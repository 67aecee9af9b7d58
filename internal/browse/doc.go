// Package browse implements the recursive link-following engine that
// generates browsing traffic.
//
// # Components
//
//   - ExtractLinks: finds absolute http(s) href values in a page body and
//     drops those matching the blacklist
//   - Fetcher: performs one GET, classifies the outcome, feeds the traffic
//     Meter and backs off the shared WaitBounds on HTTP 429
//   - Engine: walks from a start URL down to a depth, one random link per
//     hop, blacklisting URLs that fail or lead nowhere
//   - Driver: starts one Engine session after another from random root
//     URLs until its context is cancelled
//
// Shared run state (Meter, Blacklist, WaitBounds) is grouped in State and
// passed explicitly. Each part is safe for concurrent use so that reporting
// goroutines can read it while a session is running; sessions themselves
// run one at a time.
//
// # Usage
//
//	state := browse.NewState(cfg.Blacklist, minWait, maxWait)
//	fetcher := browse.NewFetcher(httpClient, state, browse.WithUserAgent(ua))
//	engine := browse.NewEngine(fetcher, state)
//	driver := browse.NewDriver(engine, roots, minDepth, maxDepth)
//	err := driver.Run(ctx) // returns ctx.Err() once cancelled
package browse
