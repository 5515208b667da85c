package capability

import "dht/internal/platform"

// bundledCapabilities is the static capability table, loaded at startup and
// never mutated (§9). Additions here require a corresponding mapping for
// every supported platform key, or an explicit exclusion test (Testable
// Property 4, §8).
var bundledCapabilities = []Capability{
	{ID: "postgresql_client", Category: "database", Description: "PostgreSQL client libraries and headers (libpq)"},
	{ID: "mysql_client", Category: "database", Description: "MySQL/MariaDB client libraries and headers"},
	{ID: "image_codecs_jpeg", Category: "codec", Description: "JPEG encode/decode support (libjpeg)"},
	{ID: "image_codecs_png", Category: "codec", Description: "PNG encode/decode support (libpng)"},
	{ID: "ssl_toolkit", Category: "crypto", Description: "TLS/SSL development headers (openssl)"},
	{ID: "compression_zlib", Category: "compression", Description: "zlib development headers"},
	{ID: "native_build_toolchain", Category: "build", Description: "C compiler and build essentials for source builds"},
	{ID: "ffi_toolkit", Category: "build", Description: "libffi development headers"},
	{ID: "xml_toolkit", Category: "parsing", Description: "libxml2/libxslt development headers"},
}

// bundledMappings spans major Linux families, macOS, and Windows, per §6.
// A missing entry for the running platform surfaces as NoMappingForPlatform.
var bundledMappings = []PlatformMapping{
	// postgresql_client
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libpq-dev", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "libpq-dev", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "libpq-devel", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "rhel"}, ManagerID: "dnf", PackageName: "libpq-devel", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "alpine"}, ManagerID: "apk", PackageName: "libpq-dev", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "arch"}, ManagerID: "pacman", PackageName: "postgresql-libs", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "libpq", Alternatives: []string{"psycopg2-binary"}},
	{CapabilityID: "postgresql_client", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: "PostgreSQL.PostgreSQL", Alternatives: []string{"psycopg2-binary"}},

	// mysql_client
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "default-libmysqlclient-dev"},
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "default-libmysqlclient-dev"},
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "mysql-devel"},
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "alpine"}, ManagerID: "apk", PackageName: "mariadb-dev"},
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "mysql-client"},
	{CapabilityID: "mysql_client", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: "Oracle.MySQL"},

	// image_codecs_jpeg — note the self-test post-install step.
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libjpeg-dev", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}},
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "libjpeg-dev", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}},
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "libjpeg-turbo-devel", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}},
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "alpine"}, ManagerID: "apk", PackageName: "jpeg-dev", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}},
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "jpeg", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}},
	{CapabilityID: "image_codecs_jpeg", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: "", PostInstallSteps: []PostInstallStep{{SelfTest: "image_codecs_jpeg"}}}, // bundled with CPython's own wheel on Windows

	// image_codecs_png
	{CapabilityID: "image_codecs_png", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libpng-dev"},
	{CapabilityID: "image_codecs_png", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "libpng-dev"},
	{CapabilityID: "image_codecs_png", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "libpng-devel"},
	{CapabilityID: "image_codecs_png", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "libpng"},
	{CapabilityID: "image_codecs_png", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: ""},

	// ssl_toolkit
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libssl-dev"},
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "libssl-dev"},
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "openssl-devel"},
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "alpine"}, ManagerID: "apk", PackageName: "openssl-dev"},
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "openssl@3"},
	{CapabilityID: "ssl_toolkit", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: "ShiningLight.OpenSSL"},

	// compression_zlib
	{CapabilityID: "compression_zlib", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "zlib1g-dev"},
	{CapabilityID: "compression_zlib", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "zlib-devel"},
	{CapabilityID: "compression_zlib", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "zlib"},
	{CapabilityID: "compression_zlib", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: ""},

	// native_build_toolchain
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "build-essential"},
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "ubuntu"}, ManagerID: "apt", PackageName: "build-essential"},
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "@development-tools"},
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "alpine"}, ManagerID: "apk", PackageName: "build-base"},
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "", PostInstallSteps: []PostInstallStep{{Command: []string{"xcode-select", "--install"}}}},
	{CapabilityID: "native_build_toolchain", Key: PlatformKey{Family: platform.FamilyWindows}, ManagerID: "winget", PackageName: "Microsoft.VisualStudio.2022.BuildTools"},

	// ffi_toolkit
	{CapabilityID: "ffi_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libffi-dev"},
	{CapabilityID: "ffi_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "libffi-devel"},
	{CapabilityID: "ffi_toolkit", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "libffi"},

	// xml_toolkit
	{CapabilityID: "xml_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "debian"}, ManagerID: "apt", PackageName: "libxml2-dev"},
	{CapabilityID: "xml_toolkit", Key: PlatformKey{Family: platform.FamilyLinux, Distribution: "fedora"}, ManagerID: "dnf", PackageName: "libxml2-devel"},
	{CapabilityID: "xml_toolkit", Key: PlatformKey{Family: platform.FamilyMac}, ManagerID: "brew", PackageName: "libxml2"},
}
