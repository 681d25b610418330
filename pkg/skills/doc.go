// Package skills implements an asynchronous skill-learning engine for
// agent orchestration loops.
//
// The engine maintains a scored, capacity-bounded, deduplicated repository
// of reusable skills. Before each iteration the loop calls InjectContext to
// rank and append the repository to the outgoing prompt; after each
// iteration it calls LearnFromExecution (fire-and-forget) with the outcome.
// A single background consumer drains the resulting event queue, derives
// skill updates through pluggable reflection and curation services, and
// applies them under the repository mutex.
//
// # Basic Usage
//
//	config := skills.DefaultConfig()
//	config.StoragePath = ".skillforge/skills.json"
//
//	engine, err := skills.NewFromEnv(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	defer engine.Shutdown()
//
//	prompt := engine.InjectContext(basePrompt)
//	// ... run the iteration ...
//	engine.LearnFromExecution(task, output, success, errText, trace, iteration)
//
// # Failure policy
//
// Nothing in this package raises into the orchestration loop. Corrupt
// storage is backed up and replaced with an empty repository, failed
// reflection or curation calls abandon the single event they were
// processing, a full queue falls back to inline processing, and a worker
// that misses its shutdown deadline is abandoned after a warning. Every
// failure is logged and recorded as telemetry.
//
// # Shutdown contract
//
// The host loop is contractually required to call Shutdown before
// terminating: it stops the worker within the configured timeout and
// performs a final save. Shutdown is idempotent.
package skills
