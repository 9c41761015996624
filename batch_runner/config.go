package batch_runner

import (
	"fmt"
	"os"
	"time"

	"github.com/codecrafters-io/subprocess/environment"
	"github.com/codecrafters-io/subprocess/process"
	"gopkg.in/yaml.v2"
)

// Config is a batch of steps loaded from YAML:
//
//	concurrency: 4
//	steps:
//	  - name: greet
//	    command: ["sh", "-c", "cat"]
//	    input: "hello"
//	    stderr: stdout
//	    timeout: 5s
type Config struct {
	Concurrency int
	Steps       []Step
}

type configFile struct {
	Concurrency int          `yaml:"concurrency"`
	Steps       []stepConfig `yaml:"steps"`
}

type stepConfig struct {
	Name          string            `yaml:"name"`
	Command       []string          `yaml:"command"`
	WorkingDir    string            `yaml:"working_dir"`
	Env           map[string]string `yaml:"env"`
	InheritEnv    *bool             `yaml:"inherit_env"`
	Stdin         string            `yaml:"stdin"`
	Stdout        string            `yaml:"stdout"`
	Stderr        string            `yaml:"stderr"`
	Input         string            `yaml:"input"`
	Timeout       string            `yaml:"timeout"`
	KillTimeout   string            `yaml:"kill_timeout"`
	Check         bool              `yaml:"check"`
	ProcessGroup  bool              `yaml:"process_group"`
	MemoryLimitMB *int64            `yaml:"memory_limit_mb"`
}

// LoadConfig reads a YAML batch file
func LoadConfig(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, err
	}

	config, err := ParseConfig(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}

	return config, nil
}

func ParseConfig(data []byte) (Config, error) {
	var file configFile
	if err := yaml.UnmarshalStrict(data, &file); err != nil {
		return Config{}, err
	}

	config := Config{Concurrency: file.Concurrency}

	for i, sc := range file.Steps {
		step, err := sc.toStep()
		if err != nil {
			return Config{}, fmt.Errorf("step %d (%s): %w", i+1, sc.Name, err)
		}

		if step.Name == "" {
			step.Name = fmt.Sprintf("step-%d", i+1)
		}

		config.Steps = append(config.Steps, step)
	}

	return config, nil
}

func (sc stepConfig) toStep() (Step, error) {
	memoryLimit, err := sc.memoryLimitBytes()
	if err != nil {
		return Step{}, err
	}

	opts := []process.ArgumentsOption{
		process.WithWorkingDirectory(sc.WorkingDir),
		process.WithProcessGroup(sc.ProcessGroup),
		process.WithMemoryLimit(memoryLimit),
	}

	for _, redirect := range []struct {
		value  string
		option func(process.Redirect) process.ArgumentsOption
	}{
		{sc.Stdin, process.WithStdin},
		{sc.Stdout, process.WithStdout},
		{sc.Stderr, process.WithStderr},
	} {
		r, err := process.ParseRedirect(redirect.value)
		if err != nil {
			return Step{}, err
		}

		opts = append(opts, redirect.option(r))
	}

	envOption, err := sc.environmentOption()
	if err != nil {
		return Step{}, err
	}

	if envOption != nil {
		opts = append(opts, envOption)
	}

	args, err := process.NewArguments(sc.Command, opts...)
	if err != nil {
		return Step{}, err
	}

	step := Step{
		Name:      sc.Name,
		Arguments: args,
		Input:     sc.Input,
		Check:     sc.Check,
	}

	if sc.Timeout != "" {
		if step.Timeout, err = time.ParseDuration(sc.Timeout); err != nil {
			return Step{}, fmt.Errorf("invalid timeout: %w", err)
		}
	}

	if sc.KillTimeout != "" {
		killTimeout, err := time.ParseDuration(sc.KillTimeout)
		if err != nil {
			return Step{}, fmt.Errorf("invalid kill_timeout: %w", err)
		}

		step.KillTimeout = &killTimeout
	}

	return step, nil
}

// memoryLimitBytes falls back to SUBPROCESS_MEMORY_LIMIT_IN_MB when memory_limit_mb isn't set
func (sc stepConfig) memoryLimitBytes() (int64, error) {
	if sc.MemoryLimitMB == nil {
		return process.MemoryLimitFromEnv()
	}

	return *sc.MemoryLimitMB * 1024 * 1024, nil
}

// environmentOption returns nil when the step simply inherits the parent's environment
func (sc stepConfig) environmentOption() (process.ArgumentsOption, error) {
	inherit := sc.InheritEnv == nil || *sc.InheritEnv

	if inherit && len(sc.Env) == 0 {
		return nil, nil
	}

	var builder *environment.Builder
	if inherit {
		builder = environment.NewBuilder()
	} else {
		builder = environment.NewEmptyBuilder()
	}

	for key, value := range sc.Env {
		if err := builder.Set(key, value); err != nil {
			return nil, err
		}
	}

	return process.WithEnvironmentBuilder(builder), nil
}
