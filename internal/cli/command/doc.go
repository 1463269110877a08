// Package command defines the pwdless-cli commands.
//
// Every command loads the configuration, opens a token store on the
// configured backend, runs one store operation and closes the store.
// Results go to the app writer in the format selected by --output; logs
// go to the error writer.
package command
