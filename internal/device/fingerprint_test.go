package device

import (
	"errors"
	"runtime"
	"testing"

	"github.com/jaypipes/ghw"
	"github.com/jaypipes/ghw/pkg/cpu"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fakeFingerprinter(threads uint32) *Fingerprinter {
	return &Fingerprinter{
		machineID: func() (string, error) { return "machine-1", nil },
		cpu: func() (*ghw.CPUInfo, error) {
			return &ghw.CPUInfo{
				TotalThreads: threads,
				Processors:   []*cpu.Processor{{Model: "Test CPU", Vendor: "Acme"}},
			}, nil
		},
		memory: func() (*ghw.MemoryInfo, error) {
			info := &ghw.MemoryInfo{}
			info.TotalPhysicalBytes = 8 << 30
			return info, nil
		},
	}
}

func TestWorkstation(t *testing.T) {
	ws, err := fakeFingerprinter(8).Workstation()
	require.NoError(t, err)

	assert.Equal(t, "machine-1", ws.DeviceID)
	assert.Equal(t, runtime.GOOS+"/"+runtime.GOARCH, ws.Platform)
	assert.Equal(t, "Test CPU", ws.Fingerprint["cpu_model"])
	assert.Equal(t, "8589934592", ws.Fingerprint["total_memory"])
	assert.Len(t, ws.HardwareHash, 64)

	again, err := fakeFingerprinter(8).Workstation()
	require.NoError(t, err)
	assert.Equal(t, ws.HardwareHash, again.HardwareHash)
}

func TestWorkstation_HardwareUnavailable(t *testing.T) {
	f := fakeFingerprinter(8)
	f.cpu = func() (*ghw.CPUInfo, error) { return nil, errors.New("no /proc") }
	f.memory = func() (*ghw.MemoryInfo, error) { return nil, errors.New("no /proc") }

	ws, err := f.Workstation()
	require.NoError(t, err)
	assert.NotContains(t, ws.Fingerprint, "cpu_model")
	assert.NotContains(t, ws.Fingerprint, "total_memory")
}

func TestWorkstation_NoMachineID(t *testing.T) {
	f := fakeFingerprinter(8)
	f.machineID = func() (string, error) { return "", errors.New("denied") }

	_, err := f.Workstation()
	assert.Error(t, err)
}

func TestWorkerCount(t *testing.T) {
	assert.Equal(t, 12, fakeFingerprinter(12).WorkerCount())
	assert.Equal(t, runtime.NumCPU(), fakeFingerprinter(0).WorkerCount())

	f := fakeFingerprinter(4)
	f.cpu = func() (*ghw.CPUInfo, error) { return nil, errors.New("no /proc") }
	assert.Equal(t, runtime.NumCPU(), f.WorkerCount())
}
