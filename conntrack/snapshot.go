package conntrack

import (
	"fmt"
	"io/ioutil"
	"os/exec"
)

//DefaultCommand lists the current connection tracking table
var DefaultCommand = []string{"conntrack", "-L", "-o", "extended"}

//Snapshot acquires and parses the current conntrack table.
//When inputFile is non-empty the snapshot is read from that file
//instead of executing the conntrack command. An acquisition failure
//is returned as an error; an empty table parses to zero entries and
//is not an error.
type Snapshot struct {
	Command   []string
	InputFile string
}

//Read acquires the raw table and parses it
func (s *Snapshot) Read() ([]*Entry, error) {
	raw, err := s.readOutput()
	if err != nil {
		return nil, err
	}
	return Parse(raw), nil
}

func (s *Snapshot) readOutput() (string, error) {
	if s.InputFile != "" {
		contents, err := ioutil.ReadFile(s.InputFile)
		if err != nil {
			return "", fmt.Errorf("reading conntrack snapshot file: %s", err.Error())
		}
		return string(contents), nil
	}

	command := s.Command
	if len(command) == 0 {
		command = DefaultCommand
	}

	output, err := exec.Command(command[0], command[1:]...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("conntrack snapshot failed: %s", err.Error())
	}
	return string(output), nil
}
