package cache

import (
	"context"
	"strconv"
	"testing"

	"bankoffice/internal/config"

	"github.com/alicebob/miniredis/v2"
)

func TestConnectDisabled(t *testing.T) {
	client, err := Connect(context.Background(), &config.RedisConfig{Enabled: false})
	if err != nil || client != nil {
		t.Fatalf("client=%v err=%v", client, err)
	}
}

func TestConnectPingsServer(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())

	client, err := Connect(context.Background(), &config.RedisConfig{
		Enabled: true,
		Host:    mr.Host(),
		Port:    port,
	})
	if err != nil {
		t.Fatalf("connect: %v", err)
	}
	defer client.Close()

	if err := client.Set(context.Background(), "k", "v", 0).Err(); err != nil {
		t.Fatalf("set: %v", err)
	}
	if got, _ := mr.Get("k"); got != "v" {
		t.Fatalf("got %q", got)
	}
}

func TestConnectUnreachable(t *testing.T) {
	mr := miniredis.RunT(t)
	port, _ := strconv.Atoi(mr.Port())
	host := mr.Host()
	mr.Close()

	if _, err := Connect(context.Background(), &config.RedisConfig{Enabled: true, Host: host, Port: port}); err == nil {
		t.Fatal("expected error for closed server")
	}
}
