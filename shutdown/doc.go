// Package shutdown lets long-running worker loops find out that the process
// wants to stop, without polling ad hoc flags or being killed mid-work.
//
// # Overview
//
// A State holds a single "shutdown requested" flag. Anything may raise it
// with Request: an OS signal, a Timer, a stop file, or plain code. Workers
// observe it either instantly or by waiting on it in place of sleeping:
//
//	for !shutdown.Requested(5 * time.Second) {
//	    doSomeWork()
//	}
//
// The flag stays raised until Reset starts a new epoch.
//
// # Architecture
//
//	┌─────────────┐   ┌─────────────┐   ┌─────────────┐
//	│   Catcher   │   │    Timer    │   │  Request()  │   producers
//	│ (SIGINT...) │   │ (deadline)  │   │ (any code)  │
//	└──────┬──────┘   └──────┬──────┘   └──────┬──────┘
//	       └─────────────────┼─────────────────┘
//	                         ↓
//	              ┌─────────────────────┐
//	              │        State        │  one flag per epoch
//	              └──────────┬──────────┘
//	        ┌────────────────┼────────────────┐
//	        ↓                ↓                ↓
//	   Requested()      Wait(timeout)    WaitContext()     workers
//
// # Usage
//
// Catching signals around a listener:
//
//	catcher, err := shutdown.CatchSignals() // SIGINT, SIGTERM
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer catcher.Stop()
//
//	runWorkers()
//
// The first caught signal requests shutdown and uninstalls the bridge, so a
// second Ctrl+C falls through to the default action and kills the process.
//
// A time limit that fires the same request:
//
//	timer := shutdown.NewTimer(30 * time.Second)
//	if err := timer.Start(); err != nil {
//	    return err
//	}
//	defer timer.Cancel()
//
// A per-task budget that also expires on shutdown:
//
//	budget := shutdown.NewCountdown(time.Minute)
//	for _, item := range items {
//	    if budget.Expired() {
//	        break
//	    }
//	    process(item)
//	}
//
// # Isolation
//
// The package-level functions operate on Default(). Tests that need their
// own flag construct one with New and call the same methods on it.
//
// # Signal safety
//
// Request neither allocates nor locks. Go never runs user code inside a
// real signal handler; the runtime forwards signals to a channel and the
// Catcher's goroutine calls Request from there.
package shutdown
