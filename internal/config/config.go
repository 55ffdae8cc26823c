package config

import (
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

type Candidate struct {
	Name          string `yaml:"name"`
	Email         string `yaml:"email"`
	Phone         string `yaml:"phone"`
	Location      string `yaml:"location"`
	Title         string `yaml:"title"`
	Experience    string `yaml:"experience"`
	Authorization string `yaml:"work_authorization"`
}

type Config struct {
	App struct {
		DataDir string `yaml:"data_dir"`
	} `yaml:"app"`

	Email struct {
		Protocol string `yaml:"protocol"` // imap | pop3
		IMAPHost string `yaml:"imap_host"`
		IMAPPort int    `yaml:"imap_port"`
		POP3Host string `yaml:"pop3_host"`
		POP3Port int    `yaml:"pop3_port"`
		Address  string `yaml:"address"`
		Mailbox  string `yaml:"mailbox"`
	} `yaml:"email"`

	Verify struct {
		TimeoutSeconds int `yaml:"timeout_seconds"`
	} `yaml:"verify"`

	Candidate Candidate `yaml:"candidate"`

	Apply struct {
		AgentCommand []string `yaml:"agent_command"`
		ResumePDF    string   `yaml:"resume_pdf"`
		MaxSteps     int      `yaml:"max_steps"`
	} `yaml:"apply"`

	Letter struct {
		Model        string `yaml:"model"`
		TemplatePath string `yaml:"template_path"`
		ChromiumPath string `yaml:"chromium_path"`
	} `yaml:"letter"`

	Calendar struct {
		Account string `yaml:"account"`
		GogPath string `yaml:"gog_path"`
	} `yaml:"calendar"`

	TaskDB struct {
		Path string `yaml:"path"`
	} `yaml:"taskdb"`
}

func (c Config) VerifyTimeout() time.Duration {
	if c.Verify.TimeoutSeconds <= 0 {
		return 300 * time.Second
	}
	return time.Duration(c.Verify.TimeoutSeconds) * time.Second
}

func Load(path string) (Config, error) {
	var cfg Config
	b, err := os.ReadFile(path)
	if err != nil {
		return cfg, err
	}
	err = yaml.Unmarshal(b, &cfg)
	return cfg, err
}

// Default returns the configuration written on first run.
func Default() Config {
	var cfg Config
	cfg.App.DataDir = "captures"
	cfg.Email.Protocol = "imap"
	cfg.Email.IMAPHost = "imap.gmail.com"
	cfg.Email.IMAPPort = 993
	cfg.Email.POP3Port = 995
	cfg.Email.Mailbox = "INBOX"
	cfg.Verify.TimeoutSeconds = 300
	cfg.Apply.MaxSteps = 80
	cfg.Letter.Model = "claude-sonnet-4-20250514"
	cfg.Calendar.GogPath = "gog"
	cfg.TaskDB.Path = "taskdb.sqlite"
	return cfg
}
