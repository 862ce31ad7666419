package apperror

import "errors"

var (
	ErrGameFinished            = errors.New("game is already finished")
	ErrNotYourTurn             = errors.New("it's not your turn")
	ErrCellOccupied            = errors.New("cell is already occupied")
	ErrUnableToPredict         = errors.New("unable to predict action for state")
	ErrIllegalActionPrediction = errors.New("predicted action is not legal for state")
	ErrNoLegalActions          = errors.New("no legal actions for state")
	ErrInvalidTransition       = errors.New("invalid transition")
	ErrNoInput                 = errors.New("no more input")
)
