package sdk

// Version is the published SDK version.
// 0.3.0: Add SessionManager with RestorePolicy and stale-response detection.
// 0.2.0: Breaking - Client reads the bearer credential from a session.Store
// instead of Config.AccessToken.
const Version = "0.3.0"
