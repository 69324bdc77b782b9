// Package kiosk drives the per-frame pipeline of the arrival kiosk.
//
// One tick advances the presence ledger by the elapsed time, pulls a frame,
// detects faces, recognizes each face, updates the ledger, fires arrival
// notifications the policy allows, annotates the frame and presents it.
// Frame acquisition, detection, recognition, rendering and notification
// delivery are collaborators behind the interfaces in collaborators.go.
//
// The pipeline is single-stream and synchronous: one frame is fully processed
// before the next one is pulled.
package kiosk
