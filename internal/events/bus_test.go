package events_test

import (
	"testing"

	"github.com/copiiworld/cajita-go/internal/events"
	"github.com/copiiworld/cajita-go/internal/models"
)

func TestSubscribePublish(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("sub1")

	view := models.SessionView{SelectedIndex: 3, Phase: "idle"}
	bus.Publish(view)

	got := <-ch
	if got.SelectedIndex != 3 {
		t.Errorf("received selectedIndex = %d, want 3", got.SelectedIndex)
	}
}

func TestUnsubscribeClosesChannel(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("sub1")
	bus.Unsubscribe("sub1")

	if _, ok := <-ch; ok {
		t.Error("channel should be closed after unsubscribe")
	}
	if bus.SubscriberCount() != 0 {
		t.Errorf("subscriber count = %d, want 0", bus.SubscriberCount())
	}
}

func TestSlowSubscriberDropsEvents(t *testing.T) {
	bus := events.NewBus()
	ch := bus.Subscribe("slow")

	// Overflow the buffer; Publish must never block
	for i := 0; i < 50; i++ {
		bus.Publish(models.SessionView{SelectedIndex: i})
	}

	// The earliest views are still there, the excess was dropped
	first := <-ch
	if first.SelectedIndex != 0 {
		t.Errorf("first buffered view = %d, want 0", first.SelectedIndex)
	}
}

func TestPublishToMultipleSubscribers(t *testing.T) {
	bus := events.NewBus()
	a := bus.Subscribe("a")
	b := bus.Subscribe("b")

	bus.Publish(models.SessionView{SelectedIndex: 7})

	if got := <-a; got.SelectedIndex != 7 {
		t.Errorf("sub a got %d, want 7", got.SelectedIndex)
	}
	if got := <-b; got.SelectedIndex != 7 {
		t.Errorf("sub b got %d, want 7", got.SelectedIndex)
	}
}
