package deb

// Control file keys that map to semantic fields
const (
	keyPackage       = "Package"
	keyVersion       = "Version"
	keyDescription   = "Description"
	keyInstalledSize = "Installed-Size"
)

// Members of the outer ar archive
const (
	memberControlTarGz  = "control.tar.gz"
	memberControlTarXz  = "control.tar.xz"
	memberControlTarZst = "control.tar.zst"
	memberControlTar    = "control.tar"
)

// memberControl is the control file inside the control archive
const memberControl = "control"
