// The [plank] package is a Go client for the Plank project-management
// service. It models the service's domain objects (boards, lists, cards,
// members, organizations, attachments, labels, checklists, webhooks) as
// local objects backed by lazy, cached synchronization with the REST API.
//
// # Identity cache
//
// Objects are canonical per remote ID: fetching the same board twice, or
// reaching it through two different paths (directly and via a card's
// board reference), yields the same *Board. All responses merge into the
// canonical object, so two divergent local copies of one remote entity
// cannot exist within a process.
//
// # Lazy fields
//
// An object's ID is set when it enters the cache and never changes, so
// it is safe to read as a plain field at any time. Names are filled on
// every fetch but also updated by live events, so they read through a
// locked accessor such as [Board.Name]. Everything else is loaded on
// first access through a getter such as [Board.Description], which
// issues a partial field GET and merges the result. Partial responses
// only touch the fields they carry; local state for other fields is
// never clobbered.
//
// Use [Refresh] to force a full reload of an object, and [Flush] to push
// locally modified fields back to the service.
//
// # Live events
//
// [Client.Sync] subscribes an object to the service's websocket event
// stream and merges incoming deltas into the canonical object in the
// background. Fields with unflushed local modifications are not
// overwritten by event deltas.
//
// # Connecting
//
// Build a client from an endpoint URL plus an API key and member token:
//
//	client, err := plank.FromURLString("https://api.plank.example", key, token)
//
// or from the PLANK_URL, PLANK_KEY and PLANK_TOKEN environment variables
// with [FromEnv].
package plank
