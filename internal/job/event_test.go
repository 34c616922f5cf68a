package job

import "testing"

func TestEventKindString(t *testing.T) {
	cases := map[EventKind]string{
		AbnormalExitProcess: "AbnormalExitProcess",
		ActiveProcessLimit:  "ActiveProcessLimit",
		ActiveProcessZero:   "ActiveProcessZero",
		EndOfJobTime:        "EndOfJobTime",
		EndOfProcessTime:    "EndOfProcessTime",
		ExitProcess:         "ExitProcess",
		JobMemoryLimit:      "JobMemoryLimit",
		NewProcess:          "NewProcess",
		LimitNotification:   "LimitNotification",
		EventKind(99):       "Unknown",
	}
	for kind, want := range cases {
		if got := kind.String(); got != want {
			t.Errorf("EventKind(%d).String() = %q, want %q", kind, got, want)
		}
	}
}

func TestObserverFuncAdapts(t *testing.T) {
	var seen Event
	var fn ObserverFunc = func(e Event) { seen = e }

	fn.OnJobEvent(Event{Kind: NewProcess, ProcessID: 42})

	if seen.Kind != NewProcess || seen.ProcessID != 42 {
		t.Errorf("ObserverFunc did not forward the event, got %+v", seen)
	}
}
