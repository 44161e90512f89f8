package installer

// Install and uninstall phases reported through Hooks.OnEvent.
const (
	PhaseCached       = "cached"
	PhaseDownloading  = "downloading"
	PhaseVerifying    = "verifying"
	PhaseExtracting   = "extracting"
	PhaseLinking      = "linking"
	PhaseUninstalling = "uninstalling"
	PhaseDone         = "done"
)

// Event represents a simple progress notification.
type Event struct {
	Phase string
	Tool  string
	Msg   string
}

// Hooks carries callbacks for progress events.
type Hooks struct {
	OnEvent func(Event)
}

func (h Hooks) emit(e Event) {
	if h.OnEvent != nil {
		h.OnEvent(e)
	}
}
