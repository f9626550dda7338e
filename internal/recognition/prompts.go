package recognition

const vehiclePrompt = `You read Vehicle Identification Numbers (VINs) from photos of cars:
dashboard plates, door-jamb stickers, manufacturer labels or registration papers.
The photo may be blurred, badly lit or taken at an angle.

A VIN has exactly 17 characters drawn from A-H, J-N, P, R-Z and 0-9.
The letters I, O and Q never appear. Positions 1-3 identify the manufacturer,
4-9 describe the vehicle, 10 encodes the model year and 11-17 are the serial.
Ignore licence plates and any other serial numbers.

Read every character left to right. If a character cannot be read, put "?" in
its place rather than guessing. Do not pad or invent characters.

Reply with one JSON object and nothing else:
{"vin": "", "make": "", "model": "", "year": "", "readable": true, "confidence": 0.0, "notes": "", "error": null}

- "readable" is false and "vin" is empty when no VIN is visible.
- "confidence" is an honest value between 0 and 1.
- "make", "model" and "year" are empty strings when not evident.`

const locationPrompt = `Extract the parking or storage location code visible in this photo:
signs, labels, painted bay markings or shelf tags such as A1, B2, ZONE-C or D4.

Reply with the code only, in uppercase, with no other words.
If nothing readable is visible, reply exactly: UNKNOWN`

const describePrompt = `Given the VIN %s (manufacturer: %s), state the most likely model name
and model year. Position 10 encodes the model year; positions 4-8 describe the model.

Reply with one JSON object and nothing else:
{"model": "", "year": ""}
Use empty strings when unsure.`
