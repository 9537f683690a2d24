// Package uibridge carries typed UI mutation requests from producer
// goroutines, chiefly the render thread, to the single UI-thread consumer.
//
// Producers call Bridge.Send, which never blocks on the UI thread and never
// fails. Messages from one producer are applied in the order they were sent;
// no message is dropped, reordered or duplicated while the UI thread is
// alive. When the UI thread is torn down, Close discards whatever is still
// pending.
//
// The bridge does not run its own goroutine. Whenever the queue goes from
// empty to non-empty it posts one drain function onto the UI thread's
// Poster, and that drain applies messages through the Applier.
package uibridge
