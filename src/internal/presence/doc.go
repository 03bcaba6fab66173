// Package presence decides which tracked devices are connected to the router.
//
// Targets are matched against the router's online host table by IP or by
// MAC (case-insensitive). A target that drops out of the table is still
// reported, marked stale, for up to its grace count of consecutive cycles;
// this absorbs Wi-Fi roaming and DHCP churn. When the host table could not be
// fetched at all, state is frozen rather than decayed.
package presence
