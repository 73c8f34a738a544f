// Package progress defines the event surface between the download engine
// and whatever renders it.
//
// The engine never prints directly; it emits per-task events through an
// Emitter. The Console emitter renders them as status lines, Nop discards
// them, and a GUI front-end can plug in its own implementation.
//
// # Usage
//
//	em := progress.NewConsole(os.Stdout)
//
//	// From the engine, per chunk:
//	em.Progress(task.ID, task.Name, 45.2)
//	em.Message(task.ID, "\rDownloading data.bin: 45.2% at 1.4 MB/s")
//
// # Output Format
//
//	Downloading data.bin: 45.2% at 1.4 MB/s
//	Downloading data.bin: Done!
package progress
