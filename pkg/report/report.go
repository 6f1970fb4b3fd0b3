package report

import (
	"bufio"
	"bytes"
	"encoding/xml"
	"os"
	"os/exec"
	"os/user"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
)

const FormatVersion = "1.0"

// Header describes the run that produced a report.
type Header struct {
	Version string  `xml:"-"` // report format, written as a root attribute
	RunID   string  `xml:"-"` // written as a root attribute
	Creator Creator `xml:"creator"`
	Source  Source  `xml:"source"`
}

// Creator describes the software and environment that generated the report.
type Creator struct {
	XMLName              xml.Name `xml:"creator"`
	Package              string   `xml:"package"`
	Version              string   `xml:"version"`
	Commit               string   `xml:"commit,omitempty"`
	ExecutionEnvironment ExecEnv  `xml:"execution_environment"`
}

type ExecEnv struct {
	OS      string `xml:"os_sysname"`
	Release string `xml:"os_release"`
	Host    string `xml:"host"`
	Arch    string `xml:"arch"`
	UID     int    `xml:"uid"`
	Start   string `xml:"start_time"`
}

// Source describes the decoded GIF.
type Source struct {
	XMLName    xml.Name `xml:"source"`
	Filename   string   `xml:"image_filename"`
	FileSize   int64    `xml:"image_size"`
	GIFVersion string   `xml:"gif_version"`
	Width      int      `xml:"width"`
	Height     int      `xml:"height"`
	FrameCount int      `xml:"frame_count"`
	LoopCount  *int     `xml:"loop_count,omitempty"`
	Background string   `xml:"background"` // #AARRGGBB
}

// Frame records one rendered frame. Error is set, and Filename empty, for
// frames that failed to decode.
type Frame struct {
	XMLName     xml.Name `xml:"frame"`
	Index       int      `xml:"index,attr"`
	Filename    string   `xml:"filename,omitempty"`
	X           int      `xml:"x"`
	Y           int      `xml:"y"`
	Width       int      `xml:"width"`
	Height      int      `xml:"height"`
	Interlaced  bool     `xml:"interlaced"`
	Disposal    string   `xml:"disposal"`
	DelayMS     int64    `xml:"delay_ms"`
	Transparent bool     `xml:"transparent"`
	DataOffset  int64    `xml:"data_offset"`
	DataLength  int64    `xml:"data_length"`
	Error       string   `xml:"error,omitempty"`
}

// NewHeader returns a header with a fresh run id and the current execution
// environment.
func NewHeader(pkg, version, commit string, src Source) Header {
	return Header{
		Version: FormatVersion,
		RunID:   uuid.NewString(),
		Creator: Creator{
			Package:              pkg,
			Version:              version,
			Commit:               commit,
			ExecutionEnvironment: GetExecEnv(),
		},
		Source: src,
	}
}

// GetExecEnv retrieves runtime information to populate the ExecEnv struct.
func GetExecEnv() ExecEnv {
	host, err := os.Hostname()
	if err != nil {
		host = "unknown_host"
	}

	uid := 0
	if u, err := user.Current(); err == nil {
		uid, _ = strconv.Atoi(u.Uid)
	}

	return ExecEnv{
		OS:      runtime.GOOS,
		Release: osRelease(),
		Host:    host,
		Arch:    runtime.GOARCH,
		UID:     uid,
		Start:   time.Now().UTC().Format(time.RFC3339),
	}
}

func osRelease() string {
	switch runtime.GOOS {
	case "linux":
		data, err := os.ReadFile("/etc/os-release")
		if err != nil {
			return "unknown"
		}
		return keyValue(data, "PRETTY_NAME=")
	case "darwin":
		out, err := exec.Command("sw_vers", "-productVersion").Output()
		if err != nil {
			return "unknown"
		}
		return "macOS " + strings.TrimSpace(string(out))
	case "windows":
		out, err := exec.Command("cmd", "/c", "ver").Output()
		if err != nil {
			return "unknown"
		}
		return strings.TrimSpace(string(out))
	}
	return "unknown"
}

func keyValue(data []byte, prefix string) string {
	sc := bufio.NewScanner(bytes.NewReader(data))
	for sc.Scan() {
		if line := sc.Text(); strings.HasPrefix(line, prefix) {
			return strings.Trim(line[len(prefix):], `"`)
		}
	}
	return "unknown"
}
