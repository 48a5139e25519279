package cli

type confirmError struct {
	msg string
}

func (e confirmError) Error() string { return e.msg }

func errConfirm(msg string) error {
	return confirmError{msg: msg}
}
