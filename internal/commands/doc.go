// Package commands holds the command table: one Command per row of the
// commands config, each with an input action per environment, plus the
// per-environment variable managers.
//
// The table is filled in stages. ParseCommandsCSV reads the main
// tab-separated file and fixes the environment list. ConsumeInputSequences
// and ConsumeVariables then add commands and variable behaviour from the
// supplementary files. Every stage is all-or-nothing: a failing file leaves
// the container untouched.
//
// Actions are built through an ActionBuilder so that parsing stays
// independent from whatever executes keys and mouse input.
package commands
