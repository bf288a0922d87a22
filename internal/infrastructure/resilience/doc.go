/*
Package resilience provides a circuit breaker for calls to remote services.

The completion feed is the only remote dependency of the editor bridge; it
goes through a Breaker so an unreachable wiki does not stall every host
request that asks for extra completions.

	breaker := resilience.New("completion-feed", resilience.Settings{
		Timeout: 30 * time.Second,
	})

	items, err := resilience.Do(ctx, breaker, func(ctx context.Context) ([]Item, error) {
		return fetch(ctx, url)
	})

States move Closed -> Open after ReadyToTrip reports true, Open -> Half-Open
once Timeout elapses, and Half-Open -> Closed after MaxRequests consecutive
successes. Any half-open failure re-opens the breaker.
*/
package resilience
