// Package actions names the control commands a host may run against the
// router: the built-in reboot and WAN reconnect buttons, on/off for every
// switch, and enable/disable for MAC access-control entries.
package actions
