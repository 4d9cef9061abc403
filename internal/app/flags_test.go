package app

import (
	"flag"
	"testing"
)

func TestConfigBind(t *testing.T) {
	c := NewConfig()
	fs := flag.NewFlagSet("view", flag.ContinueOnError)
	c.Bind(fs)
	if err := fs.Parse([]string{"-width", "64", "-panel", "0", "-view-tps", "30"}); err != nil {
		t.Fatalf("parse: %v", err)
	}
	if c.Width != 64 || c.Panel != 0 || c.TPS != 30 || c.Scale != 6 {
		t.Fatalf("unexpected config %+v", c)
	}
}
