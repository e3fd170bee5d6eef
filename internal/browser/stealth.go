package browser

import (
	"math/rand"
	"time"

	"github.com/playwright-community/playwright-go"
)

// RandomDelay waits for a random duration between min and max milliseconds.
func RandomDelay(min, max int) {
	if min >= max {
		time.Sleep(time.Duration(min) * time.Millisecond)
		return
	}
	time.Sleep(time.Duration(rand.Intn(max-min+1)+min) * time.Millisecond)
}

// ScrollToBottom scrolls in steps so lazy-loaded listings get rendered.
func ScrollToBottom(page playwright.Page) error {
	for i := 0; i < 4; i++ {
		if _, err := page.Evaluate("window.scrollBy(0, window.innerHeight)"); err != nil {
			return err
		}
		RandomDelay(200, 500)
	}
	_, err := page.Evaluate("window.scrollTo(0, document.body.scrollHeight)")
	return err
}
