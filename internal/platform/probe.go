// Package platform implements the Platform Probe (§4.A): a pure-query
// detector for OS family, distribution, architecture, available package
// managers, shells, and proxy settings. Nothing in this package mutates
// host state.
package platform

import (
	"bufio"
	"context"
	"os"
	"os/exec"
	"runtime"
	"strings"
	"time"
)

// Family is the OS family classification used throughout the registry's
// PlatformKey matching.
type Family string

const (
	FamilyLinux   Family = "linux"
	FamilyMac     Family = "mac"
	FamilyWindows Family = "windows"
	FamilyOther   Family = "other"
)

// Arch is the normalized CPU architecture.
type Arch string

const (
	ArchX64   Arch = "x64"
	ArchARM64 Arch = "arm64"
	ArchOther Arch = "other"
)

// managerDetectTimeout bounds every package-manager detect command, per §4.A.
const managerDetectTimeout = 2 * time.Second

// Info is the full result of a single probe.
type Info struct {
	Family                 Family
	Distribution           string
	DistributionVersion    string
	Arch                   Arch
	PrivilegeAvailable     bool
	PackageManagersAvailable []string
	ContainerHost          string
	Proxies                map[string]string
	Shell                  string
	FilesystemCaseSensitive bool
	LongPathsSupported     bool
}

// Probe queries the running host. It never fails outright: individual
// sub-probes that cannot complete (no D-Bus session, no libvirt socket)
// degrade to their zero value rather than aborting the whole probe, since
// every field here is advisory input to planning, not a hard precondition.
func Probe(ctx context.Context) *Info {
	family, distro, distroVersion := detectOS()
	info := &Info{
		Family:                  family,
		Distribution:            distro,
		DistributionVersion:     distroVersion,
		Arch:                    detectArch(),
		PackageManagersAvailable: detectPackageManagers(ctx, family),
		Proxies:                 DetectProxies(),
		Shell:                   detectShell(),
		FilesystemCaseSensitive: family != FamilyWindows && family != FamilyMac,
		LongPathsSupported:      family != FamilyWindows,
	}
	info.PrivilegeAvailable = detectPrivilege(ctx, family)
	info.ContainerHost = detectContainerHost(ctx)
	return info
}

func detectArch() Arch {
	switch runtime.GOARCH {
	case "amd64":
		return ArchX64
	case "arm64":
		return ArchARM64
	default:
		return ArchOther
	}
}

func detectOS() (family Family, distro, version string) {
	switch runtime.GOOS {
	case "linux":
		distro, version = readOSRelease("/etc/os-release")
		return FamilyLinux, distro, version
	case "darwin":
		return FamilyMac, "macos", macosVersion()
	case "windows":
		return FamilyWindows, "windows", ""
	default:
		return FamilyOther, runtime.GOOS, ""
	}
}

// readOSRelease parses /etc/os-release's ID and VERSION_ID fields.
func readOSRelease(path string) (id, versionID string) {
	f, err := os.Open(path)
	if err != nil {
		return "", ""
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		k, v, ok := strings.Cut(line, "=")
		if !ok {
			continue
		}
		v = strings.Trim(v, `"`)
		switch k {
		case "ID":
			id = v
		case "VERSION_ID":
			versionID = v
		}
	}
	return id, versionID
}

func macosVersion() string {
	out, err := exec.Command("sw_vers", "-productVersion").Output()
	if err != nil {
		return ""
	}
	return strings.TrimSpace(string(out))
}

func detectShell() string {
	if s := os.Getenv("SHELL"); s != "" {
		return s
	}
	if runtime.GOOS == "windows" {
		return "powershell"
	}
	return "/bin/sh"
}

// managerDetect names one package manager id and the detect command whose
// success marks that manager available.
type managerDetect struct {
	id   string
	args []string
}

var candidateManagers = map[Family][]managerDetect{
	FamilyLinux: {
		{"apt", []string{"apt-get", "--version"}},
		{"dnf", []string{"dnf", "--version"}},
		{"yum", []string{"yum", "--version"}},
		{"pacman", []string{"pacman", "--version"}},
		{"apk", []string{"apk", "--version"}},
		{"zypper", []string{"zypper", "--version"}},
	},
	FamilyMac: {
		{"brew", []string{"brew", "--version"}},
		{"macports", []string{"port", "version"}},
	},
	FamilyWindows: {
		{"winget", []string{"winget", "--version"}},
		{"choco", []string{"choco", "--version"}},
		{"scoop", []string{"scoop", "--version"}},
	},
}

func detectPackageManagers(ctx context.Context, family Family) []string {
	var found []string
	for _, cand := range candidateManagers[family] {
		if detectOneManager(ctx, cand) {
			found = append(found, cand.id)
		}
	}
	return found
}

// detectOneManager runs a single detect command. A missing binary, a
// non-zero exit and a timeout all report the manager as unavailable; the
// result does not say which of the three occurred.
func detectOneManager(ctx context.Context, cand managerDetect) bool {
	cctx, cancel := context.WithTimeout(ctx, managerDetectTimeout)
	defer cancel()

	if _, err := exec.LookPath(cand.args[0]); err != nil {
		return false
	}
	cmd := exec.CommandContext(cctx, cand.args[0], cand.args[1:]...)
	err := cmd.Run()
	if cctx.Err() != nil {
		return false // timeout
	}
	return err == nil
}
