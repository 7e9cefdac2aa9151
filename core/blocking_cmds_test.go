package core

import (
	"testing"

	"github.com/go-test/deep"
	"github.com/guateandrew/edis/message"
)

func TestBLPop_ImmediateHitSkipsParking(t *testing.T) {
	a := newTestActor(t)

	if _, err := run(t, a, "RPUSH", "list", "a", "b"); err != nil {
		t.Fatalf("RPUSH: %s", err)
	}

	sink := newFakeSink()
	result, err := a.Run(&message.Command{
		Cmd:  "BLPOP",
		Args: [][]byte{[]byte("list"), []byte("0")},
	}, sink)
	if err != nil {
		t.Fatalf("BLPOP: %s", err)
	}
	if diff := deep.Equal(result, []interface{}{[]byte("list"), []byte("a")}); diff != nil {
		t.Errorf("BLPOP result: %s", diff)
	}
}

func TestBLPop_ParksThenWakesOnPush(t *testing.T) {
	a := newTestActor(t)
	sink := newFakeSink()

	result, err := a.Run(&message.Command{
		Cmd:  "BLPOP",
		Args: [][]byte{[]byte("list"), []byte("0")},
	}, sink)
	if err != nil {
		t.Fatalf("BLPOP: %s", err)
	}
	if result != message.Suspended {
		t.Fatalf("BLPOP on an empty list: got %v, want message.Suspended", result)
	}

	if _, err := run(t, a, "RPUSH", "list", "v"); err != nil {
		t.Fatalf("RPUSH: %s", err)
	}

	select {
	case res := <-sink.delivered:
		if res.err != nil {
			t.Fatalf("delivered error: %s", res.err)
		}
		if diff := deep.Equal(res.reply, []interface{}{[]byte("list"), []byte("v")}); diff != nil {
			t.Errorf("delivered reply: %s", diff)
		}
	default:
		t.Errorf("RPUSH did not wake the parked BLPOP")
	}
}

func TestBRPopLpush_ParksThenWakes(t *testing.T) {
	a := newTestActor(t)
	sink := newFakeSink()

	result, err := a.Run(&message.Command{
		Cmd:  "BRPOPLPUSH",
		Args: [][]byte{[]byte("src"), []byte("dst"), []byte("0")},
	}, sink)
	if err != nil {
		t.Fatalf("BRPOPLPUSH: %s", err)
	}
	if result != message.Suspended {
		t.Fatalf("BRPOPLPUSH on an empty source: got %v, want message.Suspended", result)
	}

	if _, err := run(t, a, "RPUSH", "src", "v"); err != nil {
		t.Fatalf("RPUSH: %s", err)
	}

	select {
	case res := <-sink.delivered:
		if res.err != nil {
			t.Fatalf("delivered error: %s", res.err)
		}
		if diff := deep.Equal(res.reply, []byte("v")); diff != nil {
			t.Errorf("delivered reply: %s", diff)
		}
	default:
		t.Errorf("RPUSH did not wake the parked BRPOPLPUSH")
	}

	got, err := run(t, a, "LRANGE", "dst", "0", "-1")
	if err != nil {
		t.Fatalf("LRANGE dst: %s", err)
	}
	if diff := deep.Equal(got, [][]byte{[]byte("v")}); diff != nil {
		t.Errorf("dst contents: %s", diff)
	}
}
