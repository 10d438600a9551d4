// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

/*
Package vbsim provides the hardware simulator behind the vbsim testbenches.

Circuits are built by composing parts (logic gates, adders, registers, ROMs,
see package hwlib) into chips with a small connection language, then mounted
into a Circuit. The Circuit keeps two frames of wire states and updates every
component once per step. Settle runs steps until the wire states stop
changing, which plays the role of a model evaluation in an event driven HDL
simulator.

The clock is driven from the outside with SetClock. Clocked components test
Rising or Falling during the first step that follows a clock change, so all
registers sample their inputs from the same, settled, frame.

The API is designed to mimic a real hardware description language. As a
result, it relies heavily on closures and can feel a bit awkward when
implementing custom components. MakePart offers a reflection based
alternative.
*/
package vbsim
