package capability

import "dht/internal/obs"

// managerInstall describes how to invoke one package manager non-
// interactively, and whether its own lock serializes concurrent
// invocations. Grounded on platform.candidateManagers' id/detect-args table
// (probe.go): the same "one row per manager id" shape, extended here with
// the install verb and the privilege/serialization flags §4.I's bounded-
// parallelism rule needs.
type managerInstall struct {
	command        string
	installArgs    []string // package name is appended
	needsPrivilege bool
}

// managerTable is this package's install-side counterpart to
// platform.candidateManagers: one entry per manager id capability mappings
// reference. apt, dnf, yum, pacman, zypper, and winget/choco are treated as
// serializing (needsPrivilege true) since they hold a single global lock;
// apk, brew, macports, and scoop install into a per-user prefix and may run
// concurrently.
var managerTable = map[string]managerInstall{
	"apt":      {command: "apt-get", installArgs: []string{"install", "-y"}, needsPrivilege: true},
	"dnf":      {command: "dnf", installArgs: []string{"install", "-y"}, needsPrivilege: true},
	"yum":      {command: "yum", installArgs: []string{"install", "-y"}, needsPrivilege: true},
	"pacman":   {command: "pacman", installArgs: []string{"-S", "--noconfirm"}, needsPrivilege: true},
	"apk":      {command: "apk", installArgs: []string{"add"}, needsPrivilege: false},
	"zypper":   {command: "zypper", installArgs: []string{"install", "-y"}, needsPrivilege: true},
	"brew":     {command: "brew", installArgs: []string{"install"}, needsPrivilege: false},
	"macports": {command: "port", installArgs: []string{"install"}, needsPrivilege: false},
	"winget":   {command: "winget", installArgs: []string{"install", "-e", "--accept-package-agreements"}, needsPrivilege: true},
	"choco":    {command: "choco", installArgs: []string{"install", "-y"}, needsPrivilege: true},
	"scoop":    {command: "scoop", installArgs: []string{"install"}, needsPrivilege: false},
}

// InstallCommand builds the argv for installing m's package, and reports
// whether the manager serializes concurrent invocations (§4.I's "[FULL]
// Parallel capability installs" rule: a serializing manager's installs run
// one at a time, even across capabilities, to avoid two concurrent
// lock-holding processes; the caller enforces that ordering).
func InstallCommand(m *PlatformMapping) (name string, args []string, needsPrivilege bool, err error) {
	mgr, ok := managerTable[m.ManagerID]
	if !ok {
		return "", nil, false, obs.New(obs.KindPackageManagerMissing, "capability", m.CapabilityID,
			errUnknownManager(m.ManagerID))
	}
	args = append(append([]string{}, mgr.installArgs...), m.PackageName)
	return mgr.command, args, mgr.needsPrivilege, nil
}

// NeedsPrivilege reports whether managerID's installs serialize, for
// callers that only have the manager id (not a full mapping) at hand.
func NeedsPrivilege(managerID string) bool {
	return managerTable[managerID].needsPrivilege
}
