// Package monitor carries status and control between the UI loop and
// background tasks.
//
// Each registered task gets a pair of capacity-one mailboxes with
// overwrite semantics, one per direction. Tasks post status payloads the
// UI polls each tick; the UI posts control commands the task consumes
// cooperatively. Posting never blocks and only the latest value in
// each direction is observable, so a slow reader can never stall a
// writer on the other side.
package monitor
