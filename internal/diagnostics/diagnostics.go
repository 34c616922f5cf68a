// Package diagnostics reports host and per-process system information
// alongside a sandboxed run: a snapshot of the machine it ran on, and a
// poller over the child's own resource usage while it runs.
package diagnostics

import (
	"runtime"
	"time"

	"github.com/distatus/battery"
	"github.com/shirou/gopsutil/v3/cpu"
	"github.com/shirou/gopsutil/v3/host"
	"github.com/shirou/gopsutil/v3/load"
	"github.com/shirou/gopsutil/v3/mem"
	"github.com/shirou/gopsutil/v3/process"
)

// HostSnapshot summarizes the machine a sandbox run executes on.
type HostSnapshot struct {
	Hostname      string      `json:"hostname"`
	OSName        string      `json:"os_name"`
	KernelVersion string      `json:"kernel_version"`
	Architecture  string      `json:"architecture"`
	CPUCount      int         `json:"cpu_count"`
	CPUBrand      string      `json:"cpu_brand"`
	TotalMemory   uint64      `json:"total_memory"`
	UsedMemory    uint64      `json:"used_memory"`
	Uptime        uint64      `json:"uptime"`
	LoadAverage   LoadAverage `json:"load_average"`
	Batteries     []Battery   `json:"batteries,omitempty"`
}

// LoadAverage mirrors the classic one/five/fifteen minute load figures.
type LoadAverage struct {
	One     float64 `json:"one"`
	Five    float64 `json:"five"`
	Fifteen float64 `json:"fifteen"`
}

// Battery reports one power source, when the host has any.
type Battery struct {
	ChargePercent float64 `json:"charge_percent"`
	State         string  `json:"state"`
}

// Host collects a single point-in-time snapshot of the host machine.
func Host() (HostSnapshot, error) {
	hInfo, err := host.Info()
	if err != nil {
		return HostSnapshot{}, err
	}
	vMem, _ := mem.VirtualMemory()
	lAvg, _ := load.Avg()
	cInfos, _ := cpu.Info()

	var brand string
	if len(cInfos) > 0 {
		brand = cInfos[0].ModelName
	}

	snapshot := HostSnapshot{
		Hostname:      hInfo.Hostname,
		OSName:        hInfo.OS,
		KernelVersion: hInfo.KernelVersion,
		Architecture:  runtime.GOARCH,
		CPUCount:      runtime.NumCPU(),
		CPUBrand:      brand,
		Uptime:        hInfo.Uptime,
	}
	if vMem != nil {
		snapshot.TotalMemory = vMem.Total
		snapshot.UsedMemory = vMem.Used
	}
	if lAvg != nil {
		snapshot.LoadAverage = LoadAverage{One: lAvg.Load1, Five: lAvg.Load5, Fifteen: lAvg.Load15}
	}

	if batteries, err := battery.GetAll(); err == nil {
		for _, b := range batteries {
			snapshot.Batteries = append(snapshot.Batteries, Battery{
				ChargePercent: b.Current / b.Full * 100,
				State:         b.State.String(),
			})
		}
	}

	return snapshot, nil
}

// ChildSample is one observation of a running child's resource usage.
type ChildSample struct {
	Timestamp time.Time `json:"timestamp"`
	CPUPercent float64  `json:"cpu_percent"`
	MemoryRSS  uint64   `json:"memory_rss"`
}

// WatchChild samples pid's CPU and memory every interval until duration
// elapses or the process is gone, invoking callback for each sample. It
// never returns an error: a child that exits mid-watch simply ends the
// loop early, matching the non-fatal, best-effort nature of diagnostics.
func WatchChild(pid uint32, duration, interval time.Duration, callback func(ChildSample)) {
	proc, err := process.NewProcess(int32(pid))
	if err != nil {
		return
	}

	deadline := time.Now().Add(duration)
	for time.Now().Before(deadline) {
		cpuPercent, err := proc.CPUPercent()
		if err != nil {
			return
		}
		memInfo, err := proc.MemoryInfo()
		if err != nil {
			return
		}
		callback(ChildSample{
			Timestamp:  time.Now(),
			CPUPercent: cpuPercent,
			MemoryRSS:  memInfo.RSS,
		})
		time.Sleep(interval)
	}
}
