package view

import "fmt"

const NetworkUnavailableNotice = "Network is unavailable!"

// Dialog is a modal with a single dismiss button.
type Dialog struct {
	Title   string
	Message string
	Button  string
}

// GenericErrorDialog is shown for every fetch failure. It carries no detail.
func GenericErrorDialog() *Dialog {
	return &Dialog{
		Title:   "Oops! Sorry!",
		Message: "There was an error. Please try again.",
		Button:  "OK",
	}
}

func (d *Dialog) String() string {
	return fmt.Sprintf("┌ %s\n│ %s\n└ [ %s ]\n", d.Title, d.Message, d.Button)
}
