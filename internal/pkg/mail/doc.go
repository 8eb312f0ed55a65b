// Package mail sends email through SMTP or the Gmail API behind one Mail
// interface.
package mail
