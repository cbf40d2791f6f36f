package main

import (
	"testing"
	"time"

	"github.com/ndnmap/linkrelay/internal/config"
)

func baseFetcher() config.FetcherConfig {
	return config.FetcherConfig{
		PageURL:    "127.0.0.1:8080",
		OutputFile: "status.xml",
		Interval:   1500 * time.Millisecond,
	}
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name string
		args []string
		want config.FetcherConfig
	}{
		{
			name: "configured interval kept without -t",
			args: nil,
			want: baseFetcher(),
		},
		{
			name: "short flags",
			args: []string{"-u", "router:80", "-o", "out.xml", "-t", "10"},
			want: config.FetcherConfig{PageURL: "router:80", OutputFile: "out.xml", Interval: 10 * time.Second},
		},
		{
			name: "long flags",
			args: []string{"--page-url", "router:80", "--output-file", "out.xml", "--time", "0.25"},
			want: config.FetcherConfig{PageURL: "router:80", OutputFile: "out.xml", Interval: 250 * time.Millisecond},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := parseFlags(tt.args, baseFetcher())
			if err != nil {
				t.Fatalf("parseFlags() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("parseFlags() = %+v, want %+v", got, tt.want)
			}
		})
	}
}

func TestParseFlagsRejectsBadValues(t *testing.T) {
	for _, args := range [][]string{
		{"-t", "0"},
		{"-t", "soon"},
		{"-o", ""},
		{"extra"},
	} {
		if _, err := parseFlags(args, baseFetcher()); err == nil {
			t.Errorf("parseFlags(%v) should fail", args)
		}
	}
}
