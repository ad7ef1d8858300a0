package config

type Credentials struct {
	User     string
	Password string
}

type Host struct {
	Hostname string
	Port     string
}

type HTTPGet struct {
	Scheme string
	Host
	Path string
}

type TCP struct {
	Host
}

type Container struct {
	Name string
}

type MySQL struct {
	Credentials
	Host
	Database string
}

type Redis struct {
	Host
	Password string
}

type MongoDB struct {
	Credentials
	Host
	Database string
}

type Amqp struct {
	Credentials
	Host
	VirtualHost string
}

// Probe describes one statically configured health check target. Exactly
// one of the kind blocks is expected to be set.
type Probe struct {
	Name    string `hcl:",key"`
	Timeout string `hcl:"timeout"`

	HTTP      *HTTPGet   `hcl:"http"`
	TCP       *TCP       `hcl:"tcp"`
	Container *Container `hcl:"container"`
	MySQL     *MySQL     `hcl:"mysql"`
	Redis     *Redis     `hcl:"redis"`
	MongoDB   *MongoDB   `hcl:"mongodb"`
	Amqp      *Amqp      `hcl:"amqp"`
}

type Vault struct {
	DataDir string `hcl:"dataDir"`
}

type Notes struct {
	DataDir string `hcl:"dataDir"`
}

type Mail struct {
	Credentials
	Host
	From string `hcl:"from"`
	To   string `hcl:"to"`
}

type Backup struct {
	Enabled     bool   `hcl:"enabled"`
	SourceDir   string `hcl:"sourceDir"`
	BackupDir   string `hcl:"backupDir"`
	RemoteURL   string `hcl:"remoteUrl"`
	AuthorName  string `hcl:"authorName"`
	AuthorEmail string `hcl:"authorEmail"`

	// SSHKey holds private key material (usually "ENV:..."); it is staged
	// to SSHKeyFile with restrictive permissions during initialization.
	SSHKey     string `hcl:"sshKey"`
	SSHKeyFile string `hcl:"sshKeyFile"`

	// Token is embedded into https remote URLs instead of using SSH.
	Token string `hcl:"token"`

	// Schedule is an optional cron expression for periodic backups in
	// addition to the ones triggered by mutating API calls.
	Schedule string `hcl:"schedule"`
}

type Config struct {
	ListenAddr string  `hcl:"listenAddr"`
	Probes     []Probe `hcl:"probe"`
	Vault      *Vault  `hcl:"vault"`
	Notes      *Notes  `hcl:"notes"`
	Mail       *Mail   `hcl:"mail"`
	Backup     *Backup `hcl:"backup"`
}
