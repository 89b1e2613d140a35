/*
Package session holds the credential bundle for one client and recovers it
when the service reports that authentication expired.

# States

	Valid ──auth expired──▶ Recovering ──csrf or disk refresh ok──▶ Valid
	                             │
	                             └──both stages failed──▶ FullyExpired

FullyExpired is left only by Revive, which succeeds once the credential
store holds a bundle different from the expired one.

# Concurrency

Refreshes are serialized. A caller passes the generation it used when the
failure happened; when a concurrent caller has already replaced the
bundle, Recover returns immediately so the caller simply retries with the
new credentials.
*/
package session
