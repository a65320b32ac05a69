package viewmodels

// BootstrapAdminCommand is shown on the sign-in page while no accounts exist.
const BootstrapAdminCommand = "lyceum users bootstrap-admin --email you@example.com"

// LoginViewData drives the sign-in page. When SetupCommand is set the page
// shows it instead of the form.
type LoginViewData struct {
	CSRFToken    string
	Email        string
	Next         string
	ErrorMessage string
	SetupCommand string
	Toast        *ToastViewData
}

func (d LoginViewData) SetupRequired() bool { return d.SetupCommand != "" }
