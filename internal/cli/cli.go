package cli

import (
	"errors"
	"fmt"
	"strings"
)

type Command string

const (
	CommandServe      Command = "serve"
	CommandStart      Command = "start"
	CommandStop       Command = "stop"
	CommandStatus     Command = "status"
	CommandTranscribe Command = "transcribe"
	CommandDevices    Command = "devices"
	CommandCleanup    Command = "cleanup"
	CommandSubscribe  Command = "subscribe"
	CommandDoctor     Command = "doctor"
	CommandVersion    Command = "version"
	CommandHelp       Command = "help"
)

var validCommands = map[Command]struct{}{
	CommandServe:      {},
	CommandStart:      {},
	CommandStop:       {},
	CommandStatus:     {},
	CommandTranscribe: {},
	CommandDevices:    {},
	CommandCleanup:    {},
	CommandSubscribe:  {},
	CommandDoctor:     {},
	CommandVersion:    {},
	CommandHelp:       {},
}

type Parsed struct {
	Command    Command
	ConfigPath string
	// Path is the artifact argument for transcribe.
	Path     string
	ShowHelp bool
}

func Parse(args []string) (Parsed, error) {
	parsed := Parsed{Command: CommandHelp, ShowHelp: true}
	haveCommand := false

	for i := 0; i < len(args); i++ {
		arg := args[i]

		switch arg {
		case "-h", "--help":
			parsed.ShowHelp = true
			parsed.Command = CommandHelp
		case "--version":
			parsed.ShowHelp = false
			parsed.Command = CommandVersion
		case "--config":
			i++
			if i >= len(args) {
				return Parsed{}, errors.New("--config requires a path")
			}
			parsed.ConfigPath = args[i]
		default:
			if strings.HasPrefix(arg, "-") {
				return Parsed{}, fmt.Errorf("unknown flag: %s", arg)
			}

			if haveCommand {
				if parsed.Command == CommandTranscribe && parsed.Path == "" {
					parsed.Path = arg
					continue
				}
				return Parsed{}, fmt.Errorf("unexpected arguments after command %q", parsed.Command)
			}

			cmd := Command(arg)
			if _, ok := validCommands[cmd]; !ok {
				return Parsed{}, fmt.Errorf("unknown command: %s", arg)
			}

			parsed.Command = cmd
			parsed.ShowHelp = cmd == CommandHelp
			haveCommand = true
		}
	}

	if parsed.Command == CommandTranscribe && parsed.Path == "" {
		return Parsed{}, errors.New("transcribe requires an artifact path")
	}

	return parsed, nil
}

func HelpText(binaryName string) string {
	return fmt.Sprintf(`Usage:
  %[1]s [--config PATH] <command>

Commands:
  serve             Run the recording/transcription daemon
  start             Start a recording session
  stop              Stop the active session and print the artifact path
  status            Print current recording state
  transcribe PATH   Transcribe a recorded artifact
  devices           List available capture devices
  cleanup           Remove all stored recordings
  subscribe         Stream daemon events as JSON lines until interrupted
  doctor            Run configuration and environment checks
  version           Print version information
  help              Show this help

Flags:
  --config PATH   Config file path (default: $XDG_CONFIG_HOME/voxd/config.yaml)
  -h, --help      Show help
  --version       Show version
`, binaryName)
}
