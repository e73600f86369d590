package conntrack

import (
	"strconv"
	"strings"
)

//Tuple holds one direction of a tracked flow
type Tuple struct {
	Src     string
	Dst     string
	SrcPort int
	DstPort int
	Packets int64
	Bytes   int64
}

//Entry is a single parsed connection tracking record
type Entry struct {
	Family  string
	Proto   string
	Timeout int
	State   string
	Orig    Tuple
	Reply   Tuple
	Flags   []string
	Mark    int
	Use     int
}

//ParseLine parses one line of `conntrack -L -o extended` output.
//A nil return means the line did not carry both flow directions and
//should be skipped.
func ParseLine(line string) *Entry {
	tokens := strings.Fields(strings.TrimSpace(line))
	if len(tokens) == 0 {
		return nil
	}

	entry := &Entry{
		Family: tokens[0],
	}
	if len(tokens) > 2 {
		entry.Proto = tokens[2]
	}
	if len(tokens) > 4 {
		entry.Timeout, _ = strconv.Atoi(tokens[4])
	}

	// the state token is optional and only present for stateful protocols
	idx := 5
	if len(tokens) > idx && !strings.Contains(tokens[idx], "=") && !strings.HasPrefix(tokens[idx], "[") {
		entry.State = tokens[idx]
		idx++
	}

	current := &entry.Orig
	srcCount := 0

	for ; idx < len(tokens); idx++ {
		token := tokens[idx]

		if strings.HasPrefix(token, "[") && strings.HasSuffix(token, "]") {
			entry.Flags = append(entry.Flags, strings.TrimSuffix(strings.TrimPrefix(token, "["), "]"))
			continue
		}

		pair := strings.SplitN(token, "=", 2)
		if len(pair) != 2 {
			continue
		}
		key, value := pair[0], pair[1]

		switch key {
		case "src":
			srcCount++
			if srcCount >= 2 {
				current = &entry.Reply
			} else {
				current = &entry.Orig
			}
			current.Src = value
		case "dst":
			current.Dst = value
		case "sport":
			current.SrcPort, _ = strconv.Atoi(value)
		case "dport":
			current.DstPort, _ = strconv.Atoi(value)
		case "packets":
			current.Packets, _ = strconv.ParseInt(value, 10, 64)
		case "bytes":
			current.Bytes, _ = strconv.ParseInt(value, 10, 64)
		case "mark":
			entry.Mark, _ = strconv.Atoi(value)
		case "use":
			entry.Use, _ = strconv.Atoi(value)
		default:
			// ignore unknown tokens like zone= for forward compatibility
		}
	}

	if entry.Orig.Src == "" || entry.Orig.Dst == "" ||
		entry.Reply.Src == "" || entry.Reply.Dst == "" {
		return nil
	}

	return entry
}

//Parse parses a whole snapshot, dropping unparseable lines
func Parse(raw string) []*Entry {
	var entries []*Entry
	for _, line := range strings.Split(raw, "\n") {
		if strings.TrimSpace(line) == "" {
			continue
		}
		if entry := ParseLine(line); entry != nil {
			entries = append(entries, entry)
		}
	}
	return entries
}
