package bot

import (
	"fmt"
	"os"
	"runtime"
	"time"

	"github.com/orris-inc/archy/internal/shared/version"
)

// Diagnostics reports on the running bot process for !ghostbusters.
type Diagnostics struct {
	started time.Time
	now     func() time.Time
}

func NewDiagnostics(started time.Time) *Diagnostics {
	return &Diagnostics{started: started, now: time.Now}
}

func (d *Diagnostics) Report() string {
	var mem runtime.MemStats
	runtime.ReadMemStats(&mem)

	return fmt.Sprintf("👻 **Ghostbusters report**\n"+
		"- PID: %d\n"+
		"- Goroutines: %d\n"+
		"- Heap in use: %.1f MiB\n"+
		"- Uptime: %s\n"+
		"- Version: %s",
		os.Getpid(),
		runtime.NumGoroutine(),
		float64(mem.HeapInuse)/(1<<20),
		d.now().Sub(d.started).Truncate(time.Second),
		version.String(),
	)
}
