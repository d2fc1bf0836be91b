package device

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"runtime"
	"strings"

	"github.com/denisbrodbeck/machineid"
	"github.com/jaypipes/ghw"

	"portalimg/internal/core/domain"
)

// appID scopes the machine ID so the raw OS identifier never leaves the host.
const appID = "portalimg"

// Fingerprinter identifies the workstation an upload came from.
type Fingerprinter struct {
	machineID func() (string, error)
	cpu       func() (*ghw.CPUInfo, error)
	memory    func() (*ghw.MemoryInfo, error)
}

// New creates a new Fingerprinter
func New() *Fingerprinter {
	return &Fingerprinter{
		machineID: func() (string, error) { return machineid.ProtectedID(appID) },
		cpu:       func() (*ghw.CPUInfo, error) { return ghw.CPU() },
		memory:    func() (*ghw.MemoryInfo, error) { return ghw.Memory() },
	}
}

// Workstation collects hardware-specific information. Hardware lookups that
// fail are left out of the fingerprint; only a missing machine ID is an error.
func (f *Fingerprinter) Workstation() (domain.Workstation, error) {
	machineID, err := f.machineID()
	if err != nil {
		return domain.Workstation{}, fmt.Errorf("failed to get machine ID: %w", err)
	}

	fingerprints := map[string]string{
		"os":       runtime.GOOS,
		"arch":     runtime.GOARCH,
		"hostname": getHostname(),
	}
	hashInput := []string{machineID, runtime.GOOS, runtime.GOARCH}

	if cpu, err := f.cpu(); err == nil && len(cpu.Processors) > 0 {
		fingerprints["cpu_model"] = cpu.Processors[0].Model
		fingerprints["cpu_vendor"] = cpu.Processors[0].Vendor
		hashInput = append(hashInput, cpu.Processors[0].Model)
	}
	if memory, err := f.memory(); err == nil {
		fingerprints["total_memory"] = fmt.Sprintf("%d", memory.TotalPhysicalBytes)
		hashInput = append(hashInput, fingerprints["total_memory"])
	}

	return domain.Workstation{
		DeviceID:     machineID,
		HardwareHash: generateHash(strings.Join(hashInput, "|")),
		Platform:     fmt.Sprintf("%s/%s", runtime.GOOS, runtime.GOARCH),
		Fingerprint:  fingerprints,
	}, nil
}

// WorkerCount is the number of hardware threads, used to size the upload pool.
func (f *Fingerprinter) WorkerCount() int {
	cpu, err := f.cpu()
	if err != nil || cpu.TotalThreads == 0 {
		return runtime.NumCPU()
	}
	return int(cpu.TotalThreads)
}

func generateHash(input string) string {
	hash := sha256.New()
	hash.Write([]byte(input))
	return hex.EncodeToString(hash.Sum(nil))
}

func getHostname() string {
	hostname, err := os.Hostname()
	if err != nil {
		return "unknown"
	}
	return hostname
}
